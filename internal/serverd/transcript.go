package serverd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// logNamePrefix and logNameSuffix match original_source/commonstrings.h's
// LOG_NAME_ST ("./BRS-") and LOG_NAME_END (".log").
const (
	logNamePrefix = "BRS-"
	logNameSuffix = ".log"
)

// TranscriptFactory builds a session.TranscriptFactory that opens one
// file per match serial under dir, named the way the original server
// names its per-match logs.
func TranscriptFactory(dir string) func(serial int64) (io.WriteCloser, error) {
	return func(serial int64) (io.WriteCloser, error) {
		name := fmt.Sprintf("%s%d%s", logNamePrefix, serial, logNameSuffix)
		return os.Create(filepath.Join(dir, name))
	}
}
