package sync

type PullResult struct {
	Upserted     int   `json:"upserted"`
	SkippedDirty int   `json:"skipped_dirty"`
	KeptStock    int   `json:"kept_stock"`
	Relinked     int   `json:"relinked"`
	Pruned       int64 `json:"pruned"`
}

type PushResult struct {
	Sent  int            `json:"sent"`
	Acked map[string]int `json:"acked"`
}
