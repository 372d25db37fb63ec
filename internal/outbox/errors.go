package outbox

import "errors"

// errAppendFailed simulates an infrastructure-level outbox append failure
// in FakeAppender.
var errAppendFailed = errors.New("outbox: simulated append failure")
