package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRunID returns a short random identifier used to correlate the log
// lines and result of one ingestion run.
func GenerateRunID() (string, error) {
	return gonanoid.Generate(characters, 10)
}
