package publishers

import "github.com/samvad-hq/bookmark-client/pkg/httpclient"

// Logger is the structured logging surface shared with httpclient.
type Logger = httpclient.Logger

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
