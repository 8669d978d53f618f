/*
Package interceptors provides ready-made request and response interceptors
for the dispatch pipeline: structured logging of every dispatch and
Prometheus instrumentation.

Both types are dual-sided. Register the Request side among the global
request interceptors and the Response side among the global response
interceptors of the same dispatcher.
*/
package interceptors
