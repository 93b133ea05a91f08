// Package model defines the gateway abstraction over language model backends.
// The core never depends on a concrete provider: agents drive generation
// through the Model interface and adapters (openai, anthropic) translate the
// normalized request/response shapes to vendor APIs.
package model
