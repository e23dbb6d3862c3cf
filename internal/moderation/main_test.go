package moderation

import (
	"os"
	"testing"

	"github.com/m3rciful/verifybot/core/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.Options{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
