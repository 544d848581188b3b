// Package server provides the operational HTTP surface of the inbox
// monitor: a dedicated metrics listener exposing Prometheus metrics
// and Kubernetes-style liveness and readiness probes. The monitor
// itself has no inbound application traffic; everything here exists
// for operators.
package server
