package config

import "time"

const (
	DefaultAPIHost     = "10.22.237.210:8080"
	DefaultHTTPTimeout = 5 * time.Second
	DefaultAWSRegion   = "ap-northeast-2"
)

var (
	APIHost             string
	HTTPTimeout         time.Duration
	ProvisionCredential string
)

var (
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
)

var (
	JobQueueURL   string
	EventQueueURL string

	AWSRegion       string
	AccessKeyID     string
	SecretAccessKey string
)
