// Package codec decodes Monolog-style log records.
//
// A record is a block of text in the form
//
//	[2024-01-01 00:00:00] channel.LEVEL: message {"context":"json"} ["extra","json"]
//
// where the message may span several physical lines (stack traces, dumped
// queries) and may itself contain bracket characters.
//
// # Two Grammars
//
// The Decoder exposes two entry points with deliberately different power:
//
//   - DecodeMeta inspects a single line and reports whether it starts a new
//     record, returning only the date and level. It looks at the line prefix
//     and nothing else.
//   - Decode takes a complete, bounded block and extracts all fields.
//
// A line accepted by DecodeMeta is not guaranteed to be decodable by Decode:
// a record without its two trailing payloads still opens a new record during
// indexing but yields no record when decoded.
//
// # Trailing Payloads
//
// The context and extra payloads are located from the end of the block, not
// from the start. SplitPayloads takes the shortest balanced bracket token that
// ends the block as extra, repeats the procedure on what is left to find
// context, and leaves the rest to the header pattern. Bracket matching skips
// over JSON strings, so a payload such as {"k":"a ] b"} is taken as one token.
// Messages ending in bracket text of their own ("#22 {main}") are therefore
// not mistaken for payloads.
//
// # Invalid Fields
//
// Structural non-matches are reported as a nil *Record or nil *Meta. Field
// level problems never fail the decode:
//
//   - Date is nil when the bracketed date does not parse with the configured
//     layout (2006-01-02 15:04:05 by default).
//   - Context and Extra are nil when the payload is not well-formed JSON.
//
// # Custom Grammars
//
// The meta and record header patterns can be replaced through options for
// logs written with a different line format. Replacement patterns must keep
// the named groups the decoder reads (date, level for the meta pattern; date,
// logger, level, message for the record pattern).
//
//	dec, err := codec.NewDecoder(
//	    codec.WithMetaPattern(`^<(?P<date>[^>]*)> (?P<logger>\w+)/(?P<level>\w+) `),
//	    codec.WithRecordPattern(`(?s)^<(?P<date>[^>\n]*)> (?P<logger>\w+)/(?P<level>\w+) (?P<message>.*)$`),
//	)
//
// # Thread Safety
//
// A Decoder is immutable after construction and safe for concurrent use.
package codec
