package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var (
	stepColor = color.New(color.FgGreen)
	failColor = color.New(color.FgYellow, color.Bold)
)

// setupLogging wires the run's verbosity and color choice. Everything
// goes to stderr; stdout stays clean for scripting around the tool.
func setupLogging(verbose, noColor bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    noColor,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	if noColor {
		color.NoColor = true
	}
}

// logStep reports one completed pipeline step.
func logStep(name string) {
	log.Debugf("%s %s", stepColor.Sprint("✓"), name)
}

// logStepFailure reports a contained mutator failure: the pipeline keeps
// going, the image stays as the failing step last wrote it.
func logStepFailure(mutator, message string) {
	log.Warnf("%s %s: %s", failColor.Sprint("✗"), mutator, message)
}

// logDetail is free-form progress text from inside a mutator.
func logDetail(mutator, format string, args ...interface{}) {
	log.Debugf("  %s: %s", mutator, fmt.Sprintf(format, args...))
}
