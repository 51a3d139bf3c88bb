package main

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

// Strip IPTC data from a Photoshop APP13 payload. Returns nil if no
// image resource blocks remain.
func stripSegment(buf []byte, strict bool) ([]byte, error) {
	data, err := app13.ParseSegment(buf, strict)
	if err != nil {
		return nil, err
	}
	blocks := data.NonIPTCBlocks()
	if len(blocks) == 0 {
		return nil, nil
	}
	return app13.WriteSegment(blocks)
}

// Make a copy of a JPEG file with the IPTC resource block removed from
// Photoshop APP13 segments, or with those segments removed entirely.
func stripJPEG(inName, outName string, strict, all bool) error {
	in, err := os.Open(inName)
	if err != nil {
		return err
	}
	defer in.Close()
	scanner, segments, err := jpegseg.ReadSegments(bufio.NewReader(in))
	if err != nil {
		return err
	}
	kept := segments[:0]
	for i, seg := range segments {
		if seg.Marker == jpegseg.APP13 && app13.IsPhotoshopSegment(seg.Data) {
			if all {
				continue
			}
			buf, err := stripSegment(seg.Data, strict)
			if err != nil {
				return errors.Wrapf(err, "segment %d", i)
			}
			if buf == nil {
				continue
			}
			seg.Data = buf
		}
		kept = append(kept, seg)
	}
	out, err := os.Create(outName)
	if err != nil {
		return err
	}
	defer out.Close()
	writer := bufio.NewWriter(out)
	dumper, err := jpegseg.WriteSegments(writer, kept)
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
	all := flag.Bool("all", false, "remove Photoshop APP13 segments entirely")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-strict] [-all] infile outfile\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		return
	}
	log.SetHandler(cli.New(os.Stderr))
	if err := stripJPEG(flag.Arg(0), flag.Arg(1), *strict, *all); err != nil {
		log.WithError(err).Fatal("app13strip")
	}
}
