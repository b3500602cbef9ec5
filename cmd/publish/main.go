// Command publish connects to an RTMP server and publishes a synthetic
// AAC/H.264 stream, driven by a ticker rather than a real encoder. It
// exists to exercise the stream and connection packages end to end and as
// a starting point for wiring in an actual capture/encode pipeline.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rtmppub/config"
	"rtmppub/connection"
	"rtmppub/logging"
	"rtmppub/stream"
	"rtmppub/telemetry"
	"rtmppub/timestamp"
)

func main() {
	configPath := flag.String("config", "publish.yaml", "path to the publisher's YAML configuration")
	dev := flag.Bool("dev", false, "use the human-readable development log encoder")
	flag.Parse()

	logger, err := logging.New(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "publish: build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalw("load configuration", "error", err)
	}

	rebaser := timestamp.NewRebaser()
	rebaser.CompositionOffsetMillis = cfg.Publish.CompositionOffsetMillis

	conn, err := connection.Dial(cfg.Server.Address, logger)
	if err != nil {
		logger.Fatalw("dial rtmp server", "error", err)
	}
	if err := conn.SetOutgoingChunkSize(cfg.Publish.ChunkSize); err != nil {
		logger.Fatalw("negotiate chunk size", "error", err)
	}
	if err := conn.SetWindowAckSize(cfg.Publish.WindowAckSize); err != nil {
		logger.Fatalw("negotiate window ack size", "error", err)
	}

	tcURL := fmt.Sprintf("rtmp://%s/%s", cfg.Server.Address, cfg.Server.App)
	s := stream.NewStream(conn, cfg.Server.App, tcURL, logger, rebaser)

	var hub *telemetry.Hub
	if cfg.Telemetry.Enabled {
		hub = telemetry.NewHub(logger)
		closeFn, err := telemetry.ListenAndServe(cfg.Telemetry.Address, hub, logger)
		if err != nil {
			logger.Errorw("telemetry server failed to start", "error", err)
		} else {
			defer closeFn()
		}
	}

	stop := make(chan struct{})
	if err := config.Watch(*configPath, logger, func(hot config.HotReloadable) {
		rebaser.CompositionOffsetMillis = hot.CompositionOffsetMillis
	}, stop); err != nil {
		logger.Warnw("config hot-reload disabled", "error", err)
	}
	defer close(stop)

	if err := s.Publish(cfg.Publish.StreamKey); err != nil {
		logger.Fatalw("publish", "error", err)
	}

	if err := s.OnCodecFormat(stream.FormatDescription{
		Video:       stream.AVC,
		VideoConfig: sampleAVCDecoderConfig(),
		Width:       1280,
		Height:      720,
		FrameRate:   30,
		AudioConfig: sampleAACAudioSpecificConfig(),
		SampleRate:  44100,
		Channels:    2,
	}); err != nil {
		logger.Fatalw("send codec format", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	runSyntheticEncoder(s, hub, sigCh, logger)
	s.Close()
}

// runSyntheticEncoder feeds fixed-size fake AAC/H.264 payloads to the
// stream at fixed intervals, standing in for a real capture pipeline.
func runSyntheticEncoder(s *stream.Stream, hub *telemetry.Hub, stop <-chan os.Signal, logger *zap.SugaredLogger) {
	videoTicker := time.NewTicker(time.Second / 30)
	audioTicker := time.NewTicker(time.Second / 43) // ~1024 samples at 44.1kHz
	telemetryTicker := time.NewTicker(time.Second)
	defer videoTicker.Stop()
	defer audioTicker.Stop()
	defer telemetryTicker.Stop()

	start := time.Now()
	frameIndex := 0

	for {
		select {
		case <-stop:
			return
		case now := <-videoTicker.C:
			pts := now.Sub(start).Seconds() * 1000
			keyFrame := frameIndex%60 == 0
			frameIndex++
			if err := s.OnEncodedVideo(stream.AVC, stream.Sample{
				PTS:      pts,
				KeyFrame: keyFrame,
				Data:     sampleNALUnit(keyFrame),
			}); err != nil {
				logger.Warnw("send video frame", "error", err)
			}
		case now := <-audioTicker.C:
			pts := now.Sub(start).Seconds() * 1000
			if err := s.OnEncodedAudio(sampleAACFrame(), pts); err != nil {
				logger.Warnw("send audio frame", "error", err)
			}
		case <-telemetryTicker.C:
			if hub != nil {
				hub.Broadcast(telemetry.Status{
					SessionID:  s.SessionID(),
					BytesSent:  s.ByteCount(),
					ReadyState: s.ReadyState().String(),
				})
			}
		}
	}
}

func sampleAVCDecoderConfig() []byte {
	return []byte{0x01, 0x64, 0x00, 0x1f, 0xff, 0xe1, 0x00, 0x00, 0x01, 0x00, 0x00}
}

func sampleAACAudioSpecificConfig() []byte {
	return []byte{0x12, 0x10}
}

func sampleNALUnit(keyFrame bool) []byte {
	if keyFrame {
		return []byte{0x00, 0x00, 0x00, 0x04, 0x65, 0xDE, 0xAD, 0xBE}
	}
	return []byte{0x00, 0x00, 0x00, 0x04, 0x41, 0x9A, 0x00, 0x01}
}

func sampleAACFrame() []byte {
	return []byte{0x21, 0x1a, 0x1e, 0x38}
}
