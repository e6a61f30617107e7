package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("ACADEMYDB_TEST_MODE") == "" {
			_ = os.Setenv("ACADEMYDB_TEST_MODE", "1")
		}
	})
}
