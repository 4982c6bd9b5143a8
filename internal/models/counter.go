package models

// OrderCounter is the per-day sequence document behind order numbers. The
// document id is the calendar date (YYYYMMDD); Seq only ever moves forward,
// via an atomic $inc.
type OrderCounter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
