// Package ai wraps the text generation model used for copywriting and the
// planning chatbot.
package ai
