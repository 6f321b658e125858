package ui

import "sync/atomic"

type Stats struct {
	TotalComics atomic.Int64
	TotalBytes  atomic.Int64
	Failed      atomic.Int64
}
