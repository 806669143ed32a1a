package memory

import (
	"testing"

	"mailsage/internal/repository/repotest"
)

func TestInMemoryRepositories(t *testing.T) {
	repotest.Run(t, New())
}
