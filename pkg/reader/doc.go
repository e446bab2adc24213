// Package reader exposes the records of a Monolog log file as a read-only,
// random-access collection.
//
// Opening a file scans it once. Every line that matches the decoder's meta
// grammar starts a record, and the lines that follow belong to it until the
// next match, so multi-line messages such as stack traces stay whole. Only
// the line range of each record is kept in memory; reading a record seeks
// back into the file and decodes it with the full grammar.
//
//	r, err := reader.Open("app.log")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	for i, rec := range r.All() {
//		if rec == nil {
//			continue // boundary matched but the record did not decode
//		}
//		fmt.Println(i, rec.Level, rec.Message)
//	}
//	if err := r.Err(); err != nil {
//		return err
//	}
//
// The scan also records the level and date of each record's first line, which
// back ByLevel and Between without decoding anything.
//
// A LogReader is not safe for concurrent use.
package reader
