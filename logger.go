package caretaker

import (
	"fmt"
	"log"
	"os"
)

type caretakerLogger struct {
	infologger  *log.Logger
	errorlogger *log.Logger
}

func newLogger() (l *caretakerLogger) {
	l = new(caretakerLogger)
	l.infologger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	l.errorlogger = log.New(os.Stdout, "ERR: ", log.Ldate|log.Ltime|log.Lshortfile)
	return
}

func (l caretakerLogger) info(msg string, extra ...interface{}) {
	l.infologger.Print(msg, fmt.Sprintln(extra...))
}

func (l caretakerLogger) error(msg string, extra ...interface{}) {
	l.errorlogger.Print(msg, fmt.Sprintln(extra...))
}

func (l caretakerLogger) fatal(msg string, extra ...interface{}) {
	l.errorlogger.Fatal(msg, fmt.Sprintln(extra...))
}
