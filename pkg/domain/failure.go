package domain

import "fmt"

// Stage names the pipeline step where a URL failed
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
)

// Failure records a catalog URL that produced no recipe
type Failure struct {
	URL   string `json:"url"`
	Stage Stage  `json:"stage"`
	Cause error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.URL, f.Cause)
}

func (f Failure) Unwrap() error {
	return f.Cause
}
