package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("something went wrong", map[string]interface{}{"speaker_id": "s1"})

	assert.Equal(t, "something went wrong: something went wrong", err.Error())
	assert.Equal(t, "s1", err.GetFields()["speaker_id"])
	assert.Contains(t, err.Location(), "errors_test.go")
}

func TestWrap(t *testing.T) {
	base := errors.New("network down")
	err := Wrap(base, "verification call failed")

	assert.Equal(t, "verification call failed: network down", err.Error())
	assert.True(t, errors.Is(err, base))

	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithFieldDoesNotMutateOriginal(t *testing.T) {
	err := New("base")
	enriched := err.WithField("claim_id", "c1")

	assert.Empty(t, err.GetFields())
	assert.Equal(t, "c1", enriched.GetFields()["claim_id"])
}

func TestDomainSentinels(t *testing.T) {
	err := NewSpeakerNotFound("missing")
	assert.True(t, errors.Is(err, ErrSpeakerNotFound))
	assert.Equal(t, "SPEAKER_NOT_FOUND", GetErrorCode(err))
	assert.Equal(t, "missing", GetErrorFields(err)["speaker_id"])

	limitErr := NewSpeakerLimitReached(8)
	assert.True(t, errors.Is(limitErr, ErrSpeakerLimitReached))
	assert.Equal(t, 8, limitErr.GetFields()["limit"])

	minErr := NewSpeakerMinimum(2)
	assert.True(t, errors.Is(minErr, ErrSpeakerMinimum))

	claimErr := NewAlreadyClaim("u1")
	assert.True(t, errors.Is(claimErr, ErrAlreadyClaim))
	assert.Equal(t, "ALREADY_CLAIM", claimErr.GetCode())
}

func TestWrappedSentinelSurvivesFurtherWrapping(t *testing.T) {
	inner := NewAlreadyClaim("u2")
	outer := fmt.Errorf("marking failed: %w", inner)

	assert.True(t, errors.Is(outer, ErrAlreadyClaim))
	assert.Equal(t, "ALREADY_CLAIM", GetErrorCode(outer))
}

func TestAsJSON(t *testing.T) {
	err := New("bad request").WithCode("INVALID_INPUT").WithField("field", "text")
	m := err.AsJSON()

	assert.Equal(t, "INVALID_INPUT", m["code"])
	assert.NotEmpty(t, m["location"])
	assert.Equal(t, "text", m["context"].(map[string]interface{})["field"])
}
