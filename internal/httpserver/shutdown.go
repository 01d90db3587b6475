package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown. It covers both draining
// in-flight requests and letting the upload ingestor finish its queue,
// so it is longer than a typical request deadline.
var ShutdownTimeout = 30 * time.Second
