package config

import (
	"os"
	"time"
)

func LoadFromEnv() {
	APIHost = getenv("AVISA_API_HOST", DefaultAPIHost)
	HTTPTimeout = getDuration("AVISA_HTTP_TIMEOUT", DefaultHTTPTimeout)
	ProvisionCredential = os.Getenv("AVISA_PROVISION_CREDENTIAL")

	InfluxURL = os.Getenv("INFLUX_URL")
	InfluxToken = os.Getenv("INFLUX_TOKEN")
	InfluxOrg = os.Getenv("INFLUX_ORG")
	InfluxBucket = os.Getenv("INFLUX_BUCKET")

	JobQueueURL = os.Getenv("JOB_QUEUE_URL")
	EventQueueURL = os.Getenv("EVENT_QUEUE_URL")

	AWSRegion = getenv("AWS_REGION", DefaultAWSRegion)
	AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getDuration falls back when the value is missing or malformed.
func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
