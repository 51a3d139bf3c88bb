/*
Package app13 reads and writes the Photoshop image resources found in
a JPEG APP13 segment, and the IPTC-NAA records held in the IPTC
resource block. It works on segment payloads that have already been
extracted from the JPEG stream; finding the segments is up to the
caller.

A segment is the identification string "Photoshop 3.0\0" followed by
image resource blocks:

	"8BIM"      4-byte signature
	type        2-byte resource ID (0x0404 for IPTC-NAA)
	name        pascal string, padded to an even length
	size        4-byte data size
	data        size bytes, padded to an even length

Blocks other than IPTC are kept as raw bytes and written back
unchanged. The IPTC block is decoded into Application Record 2 records,
with the charset given by an envelope coded character set record if
present, and ISO-8859-1 otherwise. IPTC extended datasets aren't
supported: decoding stops at the first one.

Example: Print the IPTC records of a segment.

	data, err := app13.ParseSegment(segment, false)
	if err != nil {
		log.Fatal(err)
	}
	for _, rec := range data.Records() {
		fmt.Printf("%s: %s\n", rec.Type.Name(), rec.Value)
	}

Example: Replace the caption and re-encode the segment.

	records := data.Records()
	for i := range records {
		if records[i].Type == app13.Caption {
			records[i].Value = "New caption"
		}
	}
	segment, err = data.WithRecords(records).Encode()
	if err != nil {
		log.Fatal(err)
	}

Records are written in descending order of type after a record version
record, as Photoshop-compatible readers expect. A charset declared by
the parsed data is kept if it can still represent every record.
Otherwise values that can't be represented in ISO-8859-1 cause the block
to be written in UTF-8, with an envelope record declaring it. A charset
set with WithCharset overrides both, and values it can't represent are
an error.

The app13print, app13copy and app13strip directories contain commands
that apply the package to JPEG files.
*/
package app13
