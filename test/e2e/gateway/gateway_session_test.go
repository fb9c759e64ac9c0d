package gateway_test

import (
	"testing"
	"time"

	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/session"
	"github.com/stretchr/testify/require"
)

// TestSessionFlows drives the client session controller against the real
// gateway image.
func TestSessionFlows(t *testing.T) {
	baseURL, cleanup := setupGatewayContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	t.Run("register in two steps", func(t *testing.T) {
		ctrl := session.New(client, session.WithRequestTimeout(10*time.Second))
		defer ctrl.Close()

		require.NoError(t, ctrl.SubmitRegistrationStart("grace@example.com", testPassword))
		require.Equal(t, session.UsernameRequired, ctrl.State().Phase)

		require.NoError(t, ctrl.SubmitRegistrationFinish("grace"))
		st, err := ctrl.Await(t.Context())
		require.NoError(t, err)
		require.Equal(t, session.Authenticated, st.Phase, st.Message())

		profile, err := client.GetProfile(t.Context(), st.Token)
		require.NoError(t, err)
		require.Equal(t, "grace", profile.DisplayName)
	})

	t.Run("taken username keeps the first step", func(t *testing.T) {
		ctrl := session.New(client, session.WithRequestTimeout(10*time.Second))
		defer ctrl.Close()

		require.NoError(t, ctrl.SubmitRegistrationStart("heidi@example.com", testPassword))
		require.NoError(t, ctrl.SubmitRegistrationFinish("grace"))

		st, err := ctrl.Await(t.Context())
		require.NoError(t, err)
		require.Equal(t, session.Failed, st.Phase)
		require.Equal(t, session.UsernameRequired, st.Fallback)
		require.Equal(t, "That username is already taken.", st.Message())

		require.NoError(t, ctrl.SubmitRegistrationFinish("heidi"))
		st, err = ctrl.Await(t.Context())
		require.NoError(t, err)
		require.Equal(t, session.Authenticated, st.Phase, st.Message())
	})

	t.Run("login then logout", func(t *testing.T) {
		ctrl := session.New(client, session.WithRequestTimeout(10*time.Second))
		defer ctrl.Close()

		require.NoError(t, ctrl.SubmitLogin("grace", testPassword))
		st, err := ctrl.Await(t.Context())
		require.NoError(t, err)
		require.True(t, st.IsAuthenticated(), st.Message())
		require.NotEmpty(t, ctrl.Token())

		ctrl.Logout()
		require.Equal(t, session.Unauthenticated, ctrl.State().Phase)
		require.Empty(t, ctrl.Token())
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := session.New(client, session.WithRequestTimeout(10*time.Second))
		defer ctrl.Close()

		require.NoError(t, ctrl.SubmitLogin("grace", "wrong-password"))
		st, err := ctrl.Await(t.Context())
		require.NoError(t, err)
		require.Equal(t, session.Failed, st.Phase)
		require.Equal(t, "Invalid email, username or password.", st.Message())
	})
}
