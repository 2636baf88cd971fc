// Package status classifies HTTP failures.
//
// A Status is an error that carries an HTTP status code, a message and an
// expose flag. Its Kind is derived from the code class:
//
//	1xx Informational
//	2xx Successful
//	3xx Redirection
//	4xx ClientError
//	5xx ServerError
//	other Unknown
//
// ServerError and Unknown statuses need to be thrown: they are reported
// to the fault path (logged) before being rendered, and their message is
// replaced with the generic status text unless Expose is set.
//
//	if !ok {
//	    return status.New(http.StatusUnauthorized, "token expired", true)
//	}
//
// Errors that are not a Status, such as I/O failures, are converted by
// From into a non-exposed 500:
//
//	st := status.From(err)
//	if st.NeedThrow() {
//	    logger.Error("request failed", zap.Error(st))
//	}
//	http.Error(w, st.PublicMessage(), st.Code)
package status
