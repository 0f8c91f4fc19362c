// Package tools defines the Tool interface, the tool Registry with name based dispatch,
// and the error Kind contract shared by all tools exposed over MCP.
package tools
