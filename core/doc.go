// Package core defines the shared data model of AgentApps: conversation
// messages, tool call requests and results, the streaming event protocol and
// the error taxonomy used across agents, teams and model gateways.
package core
