package models

// Counter is a named monotonic sequence record, one document per sequence
// name in the counters collection.
type Counter struct {
	Name string `json:"name"`
	Seq  int    `json:"seq"`
}
