// Package runtime implements the procedure binder, the middleware composer
// and its standard middleware factories, and the performance monitor. The
// public facade package rpclog re-exports everything intended for consumers.
package runtime
