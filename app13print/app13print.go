package main

// Print the Photoshop image resource blocks and IPTC records of JPEG or
// TIFF files.

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/garyhouston/app13"
	"github.com/garyhouston/app13/internal/jpegseg"
	tiff "github.com/garyhouston/tiff66"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

func printData(w io.Writer, data *app13.Data) {
	for _, block := range data.RawBlocks() {
		if len(block.Name) > 0 {
			fmt.Fprintf(w, "  %s %q, %d bytes\n", block.Type.Name(), block.Name, len(block.Data))
		} else {
			fmt.Fprintf(w, "  %s, %d bytes\n", block.Type.Name(), len(block.Data))
		}
	}
	if charset := data.DeclaredCharset(); charset != nil {
		fmt.Fprintf(w, "  charset %s\n", charset.Name())
	}
	for _, rec := range data.Records() {
		fmt.Fprintf(w, "    %3d %-28s %q\n", int(rec.Type), rec.Type.Name(), rec.Value)
	}
}

// Print every Photoshop APP13 segment of a JPEG file.
func printJPEG(w io.Writer, buf []byte, strict bool) error {
	_, segments, err := jpegseg.ReadSegments(bytes.NewReader(buf))
	if err != nil {
		return err
	}
	for i, seg := range segments {
		if seg.Marker != jpegseg.APP13 || !app13.IsPhotoshopSegment(seg.Data) {
			continue
		}
		fmt.Fprintf(w, "%s segment %d, %d bytes\n", seg.Marker.Name(), i, len(seg.Data))
		data, err := app13.ParseSegment(seg.Data, strict)
		if err != nil {
			return errors.Wrapf(err, "segment %d", i)
		}
		printData(w, data)
	}
	return nil
}

func printTIFF(w io.Writer, buf []byte, strict bool) error {
	data, err := app13.ParseTIFF(buf, strict)
	if err != nil {
		return err
	}
	if data == nil {
		fmt.Fprintln(w, "no Photoshop or IPTC data")
		return nil
	}
	printData(w, data)
	return nil
}

func printFile(w io.Writer, name string, strict bool) error {
	buf, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, name)
	if jpegseg.IsJPEGHeader(buf) {
		return printJPEG(w, buf, strict)
	}
	if valid, _, _ := tiff.GetHeader(buf); valid {
		return printTIFF(w, buf, strict)
	}
	return errors.New("not a JPEG or TIFF file")
}

// Print each file, carrying on past failures. The result collects the
// errors of every file that failed.
func printFiles(w io.Writer, names []string, strict bool) error {
	var result error
	for _, name := range names {
		if err := printFile(w, name, strict); err != nil {
			result = multierror.Append(result, errors.Wrap(err, name))
		}
	}
	return result
}

func main() {
	strict := flag.Bool("strict", false, "fail on truncated image resource blocks")
	verbose := flag.Bool("v", false, "log parsing details")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-strict] [-v] file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return
	}
	log.SetHandler(cli.New(os.Stderr))
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := printFiles(os.Stdout, flag.Args(), *strict); err != nil {
		log.WithError(err).Fatal("app13print")
	}
}
