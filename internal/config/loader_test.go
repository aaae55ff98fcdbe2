package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/tgbridge/internal/config"
)

var _ = Describe("Loader", func() {
	var (
		tmpDir     string
		configPath string
	)

	BeforeEach(func() {
		var err error

		tmpDir, err = os.MkdirTemp("", "tgbridge-config-*")
		Expect(err).NotTo(HaveOccurred())

		configPath = filepath.Join(tmpDir, "config.toml")
	})

	AfterEach(func() {
		if tmpDir != "" {
			os.RemoveAll(tmpDir)
		}

		os.Unsetenv("TGBRIDGE_TELEGRAM__TOKEN")
		os.Unsetenv("TGBRIDGE_TELEGRAM__CHAT_ID")
		os.Unsetenv("TGBRIDGE_WAIT__TIMEOUT")
	})

	writeConfig := func(content string) {
		Expect(os.WriteFile(configPath, []byte(content), 0o600)).To(Succeed())
	}

	It("applies defaults when no file exists", func() {
		cfg, err := config.NewLoaderWithPath(configPath).Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Wait.Timeout.Std()).To(Equal(5 * time.Minute))
		Expect(cfg.Wait.PollInterval.Std()).To(Equal(500 * time.Millisecond))
		Expect(cfg.Sweep.MaxAge.Std()).To(Equal(24 * time.Hour))
		Expect(cfg.Sweep.Interval.Std()).To(Equal(10 * time.Minute))
		Expect(cfg.State.Dir).NotTo(BeEmpty())
		Expect(cfg.Log.File).NotTo(BeEmpty())
	})

	It("loads values from the TOML file", func() {
		writeConfig(`
[telegram]
token = "123:abc"
chat_id = 98765

[wait]
timeout = "2m"

[tmux]
target = "main:0.1"
`)

		cfg, err := config.NewLoaderWithPath(configPath).Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Telegram.Token).To(Equal("123:abc"))
		Expect(cfg.Telegram.ChatID).To(Equal(int64(98765)))
		Expect(cfg.Wait.Timeout.Std()).To(Equal(2 * time.Minute))
		Expect(cfg.Tmux.Target).To(Equal("main:0.1"))

		// Untouched settings keep their defaults.
		Expect(cfg.Wait.PollInterval.Std()).To(Equal(500 * time.Millisecond))
	})

	It("lets environment variables override the file", func() {
		writeConfig(`
[telegram]
token = "file-token"

[wait]
timeout = "2m"
`)

		os.Setenv("TGBRIDGE_TELEGRAM__TOKEN", "env-token")
		os.Setenv("TGBRIDGE_WAIT__TIMEOUT", "30s")

		cfg, err := config.NewLoaderWithPath(configPath).Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Telegram.Token).To(Equal("env-token"))
		Expect(cfg.Wait.Timeout.Std()).To(Equal(30 * time.Second))
	})

	It("reads numeric values from the environment", func() {
		os.Setenv("TGBRIDGE_TELEGRAM__CHAT_ID", "4242")

		cfg, err := config.NewLoaderWithPath(configPath).Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Telegram.ChatID).To(Equal(int64(4242)))
	})

	It("expands a tilde in the state dir", func() {
		writeConfig(`
[state]
dir = "~/custom-state"
`)

		cfg, err := config.NewLoaderWithPath(configPath).Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.State.Dir).NotTo(HavePrefix("~"))
		Expect(cfg.State.Dir).To(HaveSuffix("custom-state"))
	})

	It("fails on unparseable TOML", func() {
		writeConfig("this is not toml [")

		_, err := config.NewLoaderWithPath(configPath).Load()

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Validate", func() {
	valid := func() *config.Config {
		cfg := &config.Config{}
		cfg.Telegram.Token = "123:abc"
		cfg.Telegram.ChatID = 42
		cfg.Wait.Timeout = config.Duration(time.Minute)
		cfg.Wait.PollInterval = config.Duration(time.Second)

		return cfg
	}

	It("accepts a complete config", func() {
		Expect(valid().Validate()).To(Succeed())
	})

	It("requires a token", func() {
		cfg := valid()
		cfg.Telegram.Token = ""

		Expect(cfg.Validate()).To(MatchError(config.ErrMissingToken))
	})

	It("requires a chat id", func() {
		cfg := valid()
		cfg.Telegram.ChatID = 0

		Expect(cfg.Validate()).To(MatchError(config.ErrMissingChatID))
	})

	It("rejects a non-positive poll interval", func() {
		cfg := valid()
		cfg.Wait.PollInterval = 0

		Expect(cfg.Validate()).To(MatchError(config.ErrInvalidInterval))
	})
})

var _ = Describe("Duration", func() {
	It("parses Go duration strings", func() {
		var d config.Duration

		Expect(d.UnmarshalText([]byte("90s"))).To(Succeed())
		Expect(d.Std()).To(Equal(90 * time.Second))
	})

	It("rejects garbage", func() {
		var d config.Duration

		Expect(d.UnmarshalText([]byte("soon"))).NotTo(Succeed())
	})
})
