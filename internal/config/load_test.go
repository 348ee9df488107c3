package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("AVISA_API_HOST", "")
		t.Setenv("AVISA_HTTP_TIMEOUT", "")
		t.Setenv("AWS_REGION", "")

		LoadFromEnv()

		assert.Equal(t, DefaultAPIHost, APIHost)
		assert.Equal(t, DefaultHTTPTimeout, HTTPTimeout)
		assert.Equal(t, DefaultAWSRegion, AWSRegion)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AVISA_API_HOST", "lab.local:9000")
		t.Setenv("AVISA_HTTP_TIMEOUT", "2s")
		t.Setenv("AVISA_PROVISION_CREDENTIAL", "user,secret")
		t.Setenv("JOB_QUEUE_URL", "https://sqs/jobs")

		LoadFromEnv()

		assert.Equal(t, "lab.local:9000", APIHost)
		assert.Equal(t, 2*time.Second, HTTPTimeout)
		assert.Equal(t, "user,secret", ProvisionCredential)
		assert.Equal(t, "https://sqs/jobs", JobQueueURL)
	})

	t.Run("malformed timeout", func(t *testing.T) {
		t.Setenv("AVISA_HTTP_TIMEOUT", "soon")

		LoadFromEnv()

		assert.Equal(t, DefaultHTTPTimeout, HTTPTimeout)
	})
}
