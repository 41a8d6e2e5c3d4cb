// Package http holds the auditd HTTP controllers. Request and response
// helpers live in framework/http.
package http
