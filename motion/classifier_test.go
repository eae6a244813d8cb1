package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"object-scale-control/command"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(0.5)

	t.Run("rate above threshold yields increase", func(t *testing.T) {
		assert.Equal(t, command.Increase, classifier.Classify(Sample{Z: 0.6}))
		assert.Equal(t, command.Increase, classifier.Classify(Sample{Z: 0.51}))
	})

	t.Run("rate below negative threshold yields decrease", func(t *testing.T) {
		assert.Equal(t, command.Decrease, classifier.Classify(Sample{Z: -0.6}))
		assert.Equal(t, command.Decrease, classifier.Classify(Sample{Z: -0.51}))
	})

	t.Run("rate exactly at the threshold yields none", func(t *testing.T) {
		assert.Equal(t, command.None, classifier.Classify(Sample{Z: 0.5}))
		assert.Equal(t, command.None, classifier.Classify(Sample{Z: -0.5}))
	})

	t.Run("small rates yield none", func(t *testing.T) {
		assert.Equal(t, command.None, classifier.Classify(Sample{Z: 0.3}))
		assert.Equal(t, command.None, classifier.Classify(Sample{Z: 0}))
		assert.Equal(t, command.None, classifier.Classify(Sample{Z: -0.49}))
	})

	t.Run("other axes do not trigger", func(t *testing.T) {
		assert.Equal(t, command.None, classifier.Classify(Sample{X: 2.0, Y: 2.0}))
	})

	t.Run("non-positive threshold falls back to the default", func(t *testing.T) {
		c := NewClassifier(0)

		assert.Equal(t, command.Increase, c.Classify(Sample{Z: 0.6}))
		assert.Equal(t, command.None, c.Classify(Sample{Z: 0.4}))
	})
}
