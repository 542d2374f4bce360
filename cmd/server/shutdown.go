package main

import (
	"go.uber.org/zap"
)

// shutdownStep is one stage of the ordered teardown
type shutdownStep struct {
	name string
	run  func() error
}

// shutdown runs steps in order and closes done once all have finished.
// A failing step is logged and later steps still run.
func shutdown(steps []shutdownStep, done chan<- struct{}, log *zap.Logger) {
	defer close(done)

	log.Info("Shutting down server")
	for _, step := range steps {
		if err := step.run(); err != nil {
			log.Error("Shutdown step failed", zap.String("step", step.name), zap.Error(err))
		}
	}
	log.Info("Server shutdown complete")
}

// serve blocks on listen and then on done. Fiber's Listen returns as soon
// as the listener closes, which is before pending writes are flushed.
func serve(listen func() error, done <-chan struct{}) error {
	if err := listen(); err != nil {
		return err
	}
	<-done
	return nil
}
