// Package server implements the optional HTTP API of the memory monitor.
// It exposes health, the latest memory drift report and Prometheus metrics.
package server
