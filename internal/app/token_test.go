package app

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

func TestCancellationToken(t *testing.T) {
	token := NewCancellationToken()

	assert.NoError(t, token.Check())
	assert.False(t, token.Requested())

	token.Request()
	token.Request()

	assert.True(t, token.Requested())
	assert.ErrorIs(t, token.Check(), domain.ErrCancelled)

	token.Reset()
	assert.NoError(t, token.Check())
}

func TestCancellationToken_Concurrent(t *testing.T) {
	token := NewCancellationToken()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			token.Request()
		}()
		go func() {
			defer wg.Done()
			_ = token.Check()
		}()
	}
	wg.Wait()

	assert.True(t, token.Requested())
}
