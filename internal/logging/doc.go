// Package logging provides structured logging for medguard built on Zap.
//
// All components receive a *logging.Logger (or a named child of one) via
// constructor injection; there is no package-level global logger. The
// logger carries context fields (request ID) automatically when the
// context-aware methods are used.
//
// Usage:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    // handle error
//	}
//	defer logger.Sync()
//
//	logger.Info(ctx, "catalog loaded", zap.Int("drugs", n))
package logging
