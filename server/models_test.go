package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecklistProgress(t *testing.T) {
	mk := func(dones ...bool) Checklist {
		var c Checklist
		for _, d := range dones {
			c.Items = append(c.Items, ChecklistItem{Done: d})
		}
		return c
	}

	cases := []struct {
		name                 string
		c                    Checklist
		done, total, percent int
	}{
		{"empty", mk(), 0, 0, 0},
		{"one of four", mk(true, false, false, false), 1, 4, 25},
		{"all done", mk(true, true), 2, 2, 100},
		{"none done", mk(false, false, false), 0, 3, 0},
		{"rounds down", mk(true, false, false), 1, 3, 33},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			done, total, percent := tc.c.Progress()
			assert.Equal(t, tc.done, done)
			assert.Equal(t, tc.total, total)
			assert.Equal(t, tc.percent, percent)
		})
	}
}

func TestAttachmentIsImage(t *testing.T) {
	assert.True(t, Attachment{MimeType: "image/png"}.IsImage())
	assert.True(t, Attachment{MimeType: "image/jpeg"}.IsImage())
	assert.False(t, Attachment{MimeType: "application/pdf"}.IsImage())
	assert.False(t, Attachment{MimeType: "image/"}.IsImage())
	assert.False(t, Attachment{MimeType: ""}.IsImage())
}
