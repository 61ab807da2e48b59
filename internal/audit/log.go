// Package audit содержит журнал транзакций с дозаписью в конец файла.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Формат метки времени с миллисекундами в UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Log — журнал транзакций. Каждая запись — одна строка: метка времени,
// разделитель и JSON полезной нагрузки. Записи никогда не изменяются
// и не удаляются.
type Log struct {
	file *os.File
}

// Open открывает журнал по указанному пути, создавая файл при
// необходимости.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transaction log: %w", err)
	}
	return &Log{file: f}, nil
}

// Append дописывает запись в журнал. Строка уходит одним
// вызовом записи в файл, открытый с O_APPEND, поэтому конкурентные
// дозаписи не перемешиваются.
func (l *Log) Append(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	line := fmt.Sprintf("%s - %s\n", time.Now().UTC().Format(timestampLayout), data)
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("append transaction log: %w", err)
	}
	return nil
}

// Close закрывает файл журнала.
func (l *Log) Close() error {
	return l.file.Close()
}
