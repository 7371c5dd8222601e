package extract

import (
	"github.com/starpipe/starpipe/logger"
)

func newTestLogger() logger.Logger {
	return logger.NewLogger("starpipe", "error", false)
}
