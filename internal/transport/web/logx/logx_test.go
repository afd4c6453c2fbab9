package logx

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)

	Info(l, "req-1", "books.create", "created", "id", 42, "title", "War and Peace")
	assert.Equal(t, "lvl=info req_id=req-1 op=books.create msg=\"created\" id=42 title=\"War and Peace\"\n", buf.String())
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)

	Error(l, "req-2", "auth.login", "failed", errors.New("boom"), "dangling")
	assert.Equal(t, "lvl=error req_id=req-2 op=auth.login msg=\"failed\" err=\"boom\" dangling=(missing)\n", buf.String())
}
