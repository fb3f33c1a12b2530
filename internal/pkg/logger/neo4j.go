package logger

import (
	"fmt"
	log "log/slog"

	neo4jlog "github.com/neo4j/neo4j-go-driver/v5/neo4j/log"
)

// Neo4jLogger 把驱动内部日志转到 slog
type Neo4jLogger struct{}

var _ neo4jlog.Logger = (*Neo4jLogger)(nil)

func NewNeo4jLogger() *Neo4jLogger {
	return &Neo4jLogger{}
}

func (l *Neo4jLogger) Error(name string, id string, err error) {
	log.Error("Neo4j Driver Error", "component", name, "id", id, "err", err)
}

func (l *Neo4jLogger) Warnf(name string, id string, msg string, args ...any) {
	log.Warn("Neo4j Driver", "component", name, "id", id, "msg_detail", fmt.Sprintf(msg, args...))
}

func (l *Neo4jLogger) Infof(name string, id string, msg string, args ...any) {
	log.Debug("Neo4j Driver", "component", name, "id", id, "msg_detail", fmt.Sprintf(msg, args...))
}

func (l *Neo4jLogger) Debugf(name string, id string, msg string, args ...any) {
	log.Debug("Neo4j Driver", "component", name, "id", id, "msg_detail", fmt.Sprintf(msg, args...))
}
