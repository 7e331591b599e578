package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/frahmantamala/timekeeper/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	var (
		buf *bytes.Buffer
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("always writes info and error", func() {
		l, _ := logger.NewWithWriter(buf, "text", logger.Settings{})
		l.Info("hello")
		l.Error("boom")

		Expect(buf.String()).To(ContainSubstring("hello"))
		Expect(buf.String()).To(ContainSubstring("boom"))
	})

	It("names the custom levels", func() {
		l, _ := logger.NewWithWriter(buf, "text", logger.Settings{Audit: true, Trace: true})
		logger.Audit(l, "recorded time")
		logger.Trace(l, "looking around")

		Expect(buf.String()).To(ContainSubstring("level=AUDIT"))
		Expect(buf.String()).To(ContainSubstring("level=TRACE"))
	})

	It("drops levels that are switched off", func() {
		l, _ := logger.NewWithWriter(buf, "text", logger.Settings{})
		logger.Audit(l, "audited")
		l.Warn("warned")
		l.Debug("debugged")
		logger.Trace(l, "traced")

		Expect(buf.String()).To(BeEmpty())
	})

	It("applies new settings at runtime", func() {
		l, sw := logger.NewWithWriter(buf, "json", logger.Settings{})
		l.Debug("first")
		Expect(buf.String()).To(BeEmpty())

		sw.Set(logger.Settings{Debug: true})
		l.Debug("second")

		Expect(buf.String()).To(ContainSubstring(`"msg":"second"`))
		Expect(sw.Get().Debug).To(BeTrue())
	})

	It("keeps the switch when deriving loggers", func() {
		l, sw := logger.NewWithWriter(buf, "text", logger.Settings{})
		child := l.With("component", "test")

		sw.Set(logger.Settings{Warn: true})
		child.Warn("from child")

		Expect(buf.String()).To(ContainSubstring("component=test"))
	})

	Context("context helpers", func() {
		It("returns the stored logger", func() {
			l, _ := logger.NewWithWriter(buf, "text", logger.DefaultSettings())
			ctx := logger.Into(context.Background(), l)
			ctx = logger.With(ctx, "request_id", "abc")

			logger.From(ctx).Info("inside")
			Expect(buf.String()).To(ContainSubstring("request_id=abc"))
		})
	})
})
