// Command webtrace-demo serves a traced webapp application, a gin engine and
// a plain net/http mux side by side. Finished spans are logged and exported
// as Prometheus metrics on /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	octrace "go.opencensus.io/trace"
	"go.uber.org/zap"

	"github.com/lightstep/webtrace-go"
	"github.com/lightstep/webtrace-go/webapptrace"
	"github.com/lightstep/webtrace-go/webtracegin"
	"github.com/lightstep/webtrace-go/webtracehttp"
	"github.com/lightstep/webtrace-go/webtraceoc"
	"github.com/lightstep/webtrace-go/webtraceprom"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	logger := newLogger(*debug)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := webtrace.LoadConfig("")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "webtrace-demo"
	}

	recorder := webtraceprom.NewRecorder(prometheus.DefaultRegisterer, &logRecorder{logger: logger})
	tracer := webtrace.NewTracer(
		webtrace.WithRecorder(recorder),
		webtrace.WithTracerTags(opentracing.Tags{"host": hostname()}),
	)
	opentracing.SetGlobalTracer(tracer)
	webtrace.SetGlobalPin(webtrace.NewPin(tracer, cfg.ServiceName))
	webtrace.SetGlobalEventHandler(webtrace.NewOnEventLogger(logger))

	exporter := webtraceoc.NewExporter(recorder, webtraceoc.WithServiceName(cfg.ServiceName))
	octrace.RegisterExporter(exporter)
	defer octrace.UnregisterExporter(exporter)
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})

	opts := []webtrace.Option{webtrace.WithConfig(cfg), webtrace.WithLogger(logger)}

	app := newApp(logger)
	webapptrace.Instrument(app, opts...)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), webtracegin.Middleware(opts...))
	engine.GET("/gin/ping/:name", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": c.Param("name")})
	})

	std := http.NewServeMux()
	std.HandleFunc("GET /std/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("hello " + r.PathValue("name") + "\n"))
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/gin/", engine)
	mux.Handle("/std/", webtracehttp.NewHandler(std, opts...))
	mux.Handle("/", app)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr), zap.String("service", cfg.ServiceName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errChan:
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// logRecorder logs every finished span.
type logRecorder struct {
	logger *zap.Logger
}

func (r *logRecorder) RecordSpan(span webtrace.RawSpan) {
	r.logger.Info("span",
		zap.String("operation", span.Operation),
		zap.String("resource", span.Resource()),
		zap.Uint64("trace_id", span.Context.TraceID),
		zap.Uint64("span_id", span.Context.SpanID),
		zap.Uint64("parent_id", span.ParentSpanID),
		zap.Duration("duration", span.Duration),
		zap.Any("tags", span.Tags),
	)
}
