package main

// Decode every Photoshop APP13 segment of a JPEG file and write it back
// re-encoded into a new JPEG file. Non-IPTC resource blocks are copied
// unchanged; the IPTC block is rebuilt from its records.

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/garyhouston/app13"
	"github.com/garyhouston/app13/internal/jpegseg"
	"github.com/pkg/errors"
)

// Re-encode a single APP13 payload.
func rewriteSegment(buf []byte, strict bool, charset *app13.Charset) ([]byte, error) {
	data, err := app13.ParseSegment(buf, strict)
	if err != nil {
		return nil, err
	}
	if charset != nil {
		data = data.WithCharset(charset)
	}
	log.WithField("records", len(data.Records())).Debug("rewriting APP13 segment")
	return data.Encode()
}

func copyJPEG(inName, outName string, strict bool, charset *app13.Charset) error {
	in, err := os.Open(inName)
	if err != nil {
		return err
	}
	defer in.Close()
	scanner, segments, err := jpegseg.ReadSegments(bufio.NewReader(in))
	if err != nil {
		return err
	}
	for i := range segments {
		if segments[i].Marker != jpegseg.APP13 || !app13.IsPhotoshopSegment(segments[i].Data) {
			continue
		}
		buf, err := rewriteSegment(segments[i].Data, strict, charset)
		if err != nil {
			return errors.Wrapf(err, "segment %d", i)
		}
		segments[i].Data = buf
	}
	out, err := os.Create(outName)
	if err != nil {
		return err
	}
	defer out.Close()
	writer := bufio.NewWriter(out)
	dumper, err := jpegseg.WriteSegments(writer, segments)
	if err != nil {
		return err
	}
	if err := dumper.Copy(scanner); err != nil {
		return err
	}
	return writer.Flush()
}

func main() {
	strict := flag.Bool("strict", false, "fail on truncated image resource blocks")
	charsetName := flag.String("charset", "", "charset for the IPTC records (UTF-8, ISO-8859-1 or US-ASCII); default keeps the declared one when it fits")
	verbose := flag.Bool("v", false, "log details")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-strict] [-charset name] [-v] infile outfile\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		return
	}
	log.SetHandler(cli.New(os.Stderr))
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	var charset *app13.Charset
	if *charsetName != "" {
		charset = app13.CharsetByName(*charsetName)
		if charset == nil || charset.EscapeSequence() == nil {
			log.Fatalf("unsupported charset %q", *charsetName)
		}
	}
	if err := copyJPEG(flag.Arg(0), flag.Arg(1), *strict, charset); err != nil {
		log.WithError(err).Fatal("app13copy")
	}
}
