// Package render turns an engine.Grid into something a person can look at.
//
// Frame produces a plain text picture used by tests, the REST API and the
// websocket stream. Terminal prints the same picture with the simulator's
// colour palette when attached to a terminal. Recorder collects frames and
// Multi fans a render out to several renderers at once.
package render
