package usecase_crawl

import "log/slog"

// State of one page of a crawl target.
type State int

const (
	StateFetching State = iota
	StateExtracting
	StateStoring
	StateAdvancing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateExtracting:
		return "EXTRACTING"
	case StateStoring:
		return "STORING"
	case StateAdvancing:
		return "ADVANCING"
	case StateDone:
		return "DONE"
	default:
		return "FAILED"
	}
}

func (u *Usecase) enter(target string, page int, s State) {
	u.logger.Debug("crawl state",
		slog.String("target", target),
		slog.Int("page", page),
		slog.String("state", s.String()),
	)
	if u.observe != nil {
		u.observe(target, page, s)
	}
}
