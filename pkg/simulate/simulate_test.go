package simulate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/simulate"
)

func TestSession_FirstTurnIsNew(t *testing.T) {
	sess := simulate.NewSession()

	launch := sess.Launch()
	require.NoError(t, launch.Validate())
	assert.True(t, launch.Session.New)
	assert.Equal(t, model.RequestTypeLaunch, launch.RequestType())

	followUp := sess.Intent("FooIntent", nil)
	require.NoError(t, followUp.Validate())
	assert.False(t, followUp.Session.New)
	assert.Equal(t, launch.Session.SessionID, followUp.Session.SessionID)
	assert.NotEqual(t, launch.Request.RequestID, followUp.Request.RequestID)
}

func TestSession_EnvelopeIdentity(t *testing.T) {
	sess := simulate.NewSession(
		simulate.WithSkillID("skill-quiz"),
		simulate.WithUserID("user-42"),
		simulate.WithDeviceID("device-kitchen"),
		simulate.WithLocale("pt-BR"),
	)

	env := sess.Launch()
	assert.Equal(t, "skill-quiz", env.ApplicationID())
	assert.Equal(t, "user-42", env.UserID())
	assert.Equal(t, "device-kitchen", env.DeviceID())
	assert.Equal(t, "pt-BR", env.Request.Locale)
	assert.Equal(t, model.EnvelopeVersion, env.Version)

	// Session and system blocks agree on who is talking.
	assert.Equal(t, env.Session.User.UserID, env.Context.System.User.UserID)
	assert.Equal(t, env.Session.Application.ApplicationID, env.Context.System.Application.ApplicationID)
}

func TestSession_IntentSlots(t *testing.T) {
	sess := simulate.NewSession()

	env := sess.Intent("OrderIntent", map[string]string{"size": "large", "topping": "olives"})
	assert.Equal(t, "OrderIntent", env.IntentName())
	assert.Equal(t, model.ConfirmationStatusNone, env.Request.Intent.ConfirmationStatus)

	size, ok := env.SlotValue("size")
	require.True(t, ok)
	assert.Equal(t, "large", size)
	topping, ok := env.SlotValue("topping")
	require.True(t, ok)
	assert.Equal(t, "olives", topping)
}

func TestSession_SessionEnded(t *testing.T) {
	sess := simulate.NewSession()
	sess.Launch()

	env := sess.SessionEnded("USER_INITIATED")
	assert.Equal(t, model.RequestTypeSessionEnded, env.RequestType())
	assert.Equal(t, "USER_INITIATED", env.Request.Reason)
	assert.False(t, env.Session.New)
}

func TestSession_AttributeContinuity(t *testing.T) {
	sess := simulate.NewSession()
	sess.Launch()

	ended := sess.Record(&model.ResponseEnvelope{
		Version:           model.EnvelopeVersion,
		SessionAttributes: map[string]any{"state": "quiz", "score": 2},
		Response:          &model.Response{},
	})
	assert.False(t, ended)

	next := sess.Intent("AnswerIntent", nil)
	assert.Equal(t, "quiz", next.Session.Attributes["state"])
	assert.Equal(t, 2, next.Session.Attributes["score"])

	// The envelope gets its own copy; mutating it does not bleed into
	// later turns.
	next.Session.Attributes["state"] = "corrupted"
	after := sess.Intent("AnswerIntent", nil)
	assert.Equal(t, "quiz", after.Session.Attributes["state"])
}

func TestSession_RecordReportsSessionEnd(t *testing.T) {
	sess := simulate.NewSession()
	sess.Launch()

	end := true
	ended := sess.Record(&model.ResponseEnvelope{
		Version:  model.EnvelopeVersion,
		Response: &model.Response{ShouldEndSession: &end},
	})
	assert.True(t, ended)

	assert.False(t, sess.Record(nil), "a nil response never ends the session")
}

func TestSession_Reset(t *testing.T) {
	sess := simulate.NewSession(simulate.WithUserID("user-steady"))
	first := sess.Launch()
	sess.Record(&model.ResponseEnvelope{
		SessionAttributes: map[string]any{"state": "quiz"},
		Response:          &model.Response{},
	})

	sess.Reset()
	second := sess.Launch()

	assert.True(t, second.Session.New)
	assert.NotEqual(t, first.Session.SessionID, second.Session.SessionID)
	assert.Empty(t, second.Session.Attributes)
	assert.Equal(t, "user-steady", second.UserID(), "identity survives a reset")
}
