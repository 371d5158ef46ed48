package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VAGAFLOW_TEST_MODE") == "" {
			_ = os.Setenv("VAGAFLOW_TEST_MODE", "1")
		}
	})
}
