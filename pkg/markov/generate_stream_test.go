package markov

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestGenerateStream(t *testing.T) {
	ctx, g, modelInfo := setupTestDBWithTraining(t)

	t.Run("Successful stream", func(t *testing.T) {
		stream, err := g.GenerateStream(ctx, modelInfo, "the", WithMaxLength(10), WithTemperature(0))
		if err != nil {
			t.Fatalf("GenerateStream failed: %v", err)
		}

		var words []string
		for word := range stream {
			words = append(words, word)
		}

		expected := []string{"the", "cat", "ran", "off"}
		if !reflect.DeepEqual(words, expected) {
			t.Errorf("expected %q, got %q", expected, words)
		}
	})

	t.Run("Unknown start word", func(t *testing.T) {
		if _, err := g.GenerateStream(ctx, modelInfo, "dog"); !errors.Is(err, ErrWordNotFound) {
			t.Errorf("expected ErrWordNotFound, got %v", err)
		}
	})

	t.Run("Stream cancellation", func(t *testing.T) {
		ctxCancel, cancel := context.WithCancel(ctx)
		defer cancel()

		// With off -> the added the chain has no dead end, so the stream keeps producing.
		_ = g.InsertTransition(ctx, modelInfo, "off", "the")
		streamCancel, err := g.GenerateStream(ctxCancel, modelInfo, "the", WithMaxLength(100000))
		if err != nil {
			t.Fatalf("GenerateStream failed: %v", err)
		}

		// Read one word, then cancel
		<-streamCancel
		cancel()

		// The channel should now close quickly; at most one in-flight word may still arrive.
		timeout := time.After(time.Second)
		for {
			select {
			case _, ok := <-streamCancel:
				if !ok {
					return
				}
			case <-timeout:
				t.Fatal("timed out waiting for stream channel to close after cancellation")
			}
		}
	})
}
