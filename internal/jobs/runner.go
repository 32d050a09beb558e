package jobs

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Dhoini/CRM-service/internal/config"
	"github.com/Dhoini/CRM-service/internal/service"
	"github.com/Dhoini/CRM-service/pkg/logger"
)

// Runner выполняет фоновые задачи CRM. Задачи никогда не возвращают ошибку
// планировщику: любой сбой логируется, следующий запуск выполняется по расписанию.
type Runner struct {
	customers service.CustomerService
	products  service.ProductService
	orders    service.OrderService
	cfg       config.JobsConfig
	client    *http.Client
	log       *logger.Logger
}

// NewRunner создает новый исполнитель фоновых задач
func NewRunner(
	customers service.CustomerService,
	products service.ProductService,
	orders service.OrderService,
	cfg config.JobsConfig,
	log *logger.Logger,
) *Runner {
	return &Runner{
		customers: customers,
		products:  products,
		orders:    orders,
		cfg:       cfg,
		client:    &http.Client{Timeout: 5 * time.Second},
		log:       log,
	}
}

// appendToFile дописывает текст в конец файла задачи
func (r *Runner) appendToFile(path, text string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.log.Errorw("Failed to open job log file", "error", err, "path", path)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		r.log.Errorw("Failed to write job log file", "error", err, "path", path)
	}
}

// appendLine дописывает одну строку в файл задачи
func (r *Runner) appendLine(path, line string) {
	r.appendToFile(path, line+"\n")
}

// jobTimestamp формат времени, используемый heartbeat и restock
func jobTimestamp(t time.Time) string {
	return t.Format("02/01/2006-15:04:05")
}

// errorLine формирует строку об ошибке выполнения задачи
func errorLine(t time.Time, format string, v ...interface{}) string {
	return fmt.Sprintf("%s ERROR: %s", jobTimestamp(t), fmt.Sprintf(format, v...))
}
