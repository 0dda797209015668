package main

// General API documentation for swaggo. Generate with `swag init -g cmd/evtd/docs.go`.
//
// @title           evtd API
// @version         1.0
// @description     HTTP admin API for an in-process event registry: subscribe sinks, publish events, unsubscribe and purge.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
