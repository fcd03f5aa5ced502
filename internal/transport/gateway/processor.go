// Package gateway подтверждает пополнения кошельков через внешний платежный шлюз.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fsdevblog/creator-market/internal/service"
	"github.com/fsdevblog/creator-market/internal/transport/gateway/client"

	"github.com/sirupsen/logrus"

	"time"

	"github.com/fsdevblog/creator-market/internal/domain"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultAPITimeout             = 10 * time.Second
	defaultLimitPerIteration uint = 100
	defaultGatewayWorkers    uint = 10
)

// Processor опрашивает платежный шлюз по платежам в статусе Pending и применяет результаты.
type Processor struct {
	client            Client
	svs               Servicer
	l                 *logrus.Entry
	limitPerIteration uint
	gatewayWorkers    uint
}

// New создает новый экземпляр процессора проверки пополнений.
func New(svs Servicer, apiBaseURL string, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "gateway",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		client:            client.New(apiBaseURL),
		l:                 loggerEntry,
		limitPerIteration: defaultLimitPerIteration,
		gatewayWorkers:    defaultGatewayWorkers,
	}
}

// SetLimitPerIteration устанавливает кол-во платежей, обрабатываемых в одной итерации обработчика.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

func (p *Processor) SetGatewayWorkers(workers uint) *Processor {
	p.gatewayWorkers = workers
	return p
}

// Run запускает проверку платежей в бесконечном цикле до отмены контекста.
//
// Алгоритм работы:
//  1. В каждой итерации цикла, запрашивает через сервисный слой список платежей для проверки. Объем списка
//     лимитируется через SetLimitPerIteration.
//  2. Для каждой итерации создаются N воркеров (кол-во настраивается через SetGatewayWorkers)
//     которые, в свою очередь, делают запросы на API платежного шлюза.
//  3. Результат работы отправляется через сервисный слой.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"limitPerIteration": p.limitPerIteration,
		"gatewayWorkers":    p.gatewayWorkers,
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		default:
			if err := p.process(ctx); err != nil {
				if !errors.Is(err, ErrNoPayments) {
					p.l.WithError(err).Error("process error")
				}
				time.Sleep(time.Second) // небольшая пауза чтоб не заддосить БД.
			}
		}
	}
}

// process выполняет цикл проверки платежей: получение списка, запрос статуса через API и применение результатов.
// Возвращает ошибку в случае проблем или ErrNoPayments если нет платежей для проверки.
func (p *Processor) process(ctx context.Context) error {
	payments, paymentsErr := p.produce(ctx)

	if paymentsErr != nil {
		return fmt.Errorf("process: %w", paymentsErr)
	}

	results := p.runWorkers(ctx, payments)
	if len(results) == 0 {
		return nil
	}

	var updateArgs = make([]service.VerificationArgs, 0, len(results))
	for _, result := range results {
		// шлюз еще не обработал транзакцию — платеж остается Pending и попадет
		// в следующую итерацию.
		if result.Error == nil && result.Status == client.StatusPending {
			continue
		}
		updateArgs = append(updateArgs, service.VerificationArgs{
			Error:     result.Error,
			PaymentID: result.Payment.ID,
			Confirmed: result.Status == client.StatusCompleted,
		})
	}

	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	if updErr := p.svs.ApplyVerification(reqCtx, updateArgs); updErr != nil {
		return fmt.Errorf("process: %s", updErr.Error())
	}

	return nil
}

// workerResult представляет результат работы воркера по проверке платежа.
type workerResult struct {
	WorkerID uint
	Payment  *domain.Payment
	Error    error
	Status   client.StatusType
}

// runWorkers запускает параллельных воркеров для проверки платежей и ожидает конца их работы.
// Реализует паттерн fan-out/fan-in для параллельной обработки запросов.
func (p *Processor) runWorkers(ctx context.Context, payments []domain.Payment) []workerResult {
	var taskCh = make(chan *domain.Payment, len(payments))

	for _, payment := range payments {
		taskCh <- &payment
	}
	close(taskCh)

	wg := new(sync.WaitGroup)
	wg.Add(int(p.gatewayWorkers)) // nolint:gosec

	var resultCh = make(chan *workerResult, len(payments))

	for i := range p.gatewayWorkers {
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()

	close(resultCh)

	var results = make([]workerResult, 0, len(payments))
	for result := range resultCh {
		l := p.l.WithFields(logrus.Fields{
			"worker":    result.WorkerID,
			"paymentID": result.Payment.ID,
		})
		if result.Error != nil {
			l.WithError(result.Error).Error("get transaction status for payment")
			results = append(results, workerResult{
				Payment: result.Payment,
				Error:   result.Error,
			})
		} else {
			l.WithField("status", result.Status).Info("Success")
			results = append(results, workerResult{
				Payment: result.Payment,
				Status:  result.Status,
				Error:   nil,
			})
		}
	}
	return results
}

// worker обрабатывает платежи из канала, запрашивает статус через API и отправляет результаты.
func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan *domain.Payment,
	resultCh chan<- *workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}
			resultCh <- p.processWorkerTask(ctx, workerID, task)
		}
	}
}

// processWorkerTask делает запрос на API платежного шлюза, в случае получения ошибки 429, ждет N секунд
// указанные в заголовке ответа.
func (p *Processor) processWorkerTask(ctx context.Context, workerID uint, task *domain.Payment) *workerResult {
	for {
		reqCtx, cancel := context.WithTimeout(ctx, defaultAPITimeout)
		resp, err := p.client.GetTransactionStatus(reqCtx, task.TransactionReference)
		cancel()

		// Проверяем ошибку на TooManyRequestError для повторной попытки
		if err != nil {
			result := workerResult{
				WorkerID: workerID,
				Payment:  task,
			}
			var tooManyReq *client.TooManyRequestError
			if errors.As(err, &tooManyReq) {
				// Проверяем отмену контекста перед спячкой
				select {
				case <-ctx.Done():
					result.Error = ctx.Err()
					return &result
				case <-time.After(tooManyReq.RetryAfter):
					// После паузы делаем повторную попытку
					continue
				}
			} else {
				result.Error = err
				return &result
			}
		}

		return &workerResult{
			WorkerID: workerID,
			Payment:  task,
			Status:   resp.Status,
		}
	}
}

// produce получает список платежей для проверки.
// Возвращает ErrNoPayments, если платежи отсутствуют.
func (p *Processor) produce(ctx context.Context) ([]domain.Payment, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	payments, paymentsErr := p.svs.PaymentsForVerification(produceCtx, p.limitPerIteration)
	if paymentsErr != nil {
		return nil, fmt.Errorf("produce: %w", paymentsErr)
	}

	if len(payments) == 0 {
		return nil, ErrNoPayments
	}
	return payments, nil
}
