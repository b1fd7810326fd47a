package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsFreeText(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/records"),
		attribute.String("notes", "vip group"),
		attribute.String("performed_by", "alice"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	err := SafeError(errors.New("insert failed\nINSERT INTO daily_records ..."))
	assert.EqualError(t, err, "insert failed")
	assert.Nil(t, SafeError(nil))
}
