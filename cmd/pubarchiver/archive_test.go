// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

func TestPublishedAfter(t *testing.T) {
	articles := []types.Article{
		{DOI: "10.17912/a", Date: "2019-01-02"},
		{DOI: "10.17912/b", Date: "2020-06-15"},
		{DOI: "10.17912/c", Date: "2021-03-01"},
		{DOI: "10.17912/undated"},
		{DOI: "10.17912/mangled", Date: "sometime in 2020"},
	}

	cutoff := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	kept := publishedAfter(articles, cutoff)
	require.Len(t, kept, 2)
	assert.Equal(t, "10.17912/b", kept[0].DOI)
	assert.Equal(t, "10.17912/c", kept[1].DOI)

	// A cutoff equal to the publication date excludes the article.
	sameDay := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	kept = publishedAfter(articles, sameDay)
	require.Len(t, kept, 1)
	assert.Equal(t, "10.17912/c", kept[0].DOI)
}

func TestExitError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &exitError{code: ExitFailuresBase + 2, msg: "2 article(s) had failures"})

	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 102, ee.code)
	assert.Equal(t, "2 article(s) had failures", ee.Error())
}
