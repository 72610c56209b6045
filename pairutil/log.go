/*
Copyright © 2024 the pairdisk authors.
This file is part of pairdisk.

pairdisk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

pairdisk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with pairdisk.  If not, see <http://www.gnu.org/licenses/>.
*/

package pairutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger that writes to w and, if logFile is not
// empty, to logFile. closeLog releases the log file.
func NewLogger(w io.Writer, logFile, level string) (l *logrus.Logger, closeLog func() error, err error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("pairdisk: parsing LogLevel: %v", err)
	}
	l = logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	closeLog = func() error { return nil }
	if logFile == "" {
		l.SetOutput(w)
		return l, closeLog, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("pairdisk: problem creating log file: %v", err)
	}
	l.SetOutput(io.MultiWriter(w, f))
	return l, f.Close, nil
}
