package model

import "fmt"

// ValidationError - 필수 파라미터 누락/충돌 (원격 호출 전 검출)
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

// UnsupportedTaskError - 알 수 없는 taskType
type UnsupportedTaskError struct {
	TaskType string
}

func (e *UnsupportedTaskError) Error() string {
	return fmt.Sprintf("unsupported task type: %q", e.TaskType)
}

// InvocationError - 동기 호출 경로의 전송/디코딩 실패
type InvocationError struct {
	Op  string
	Err error
}

func (e *InvocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invocation failed during %s", e.Op)
	}
	return fmt.Sprintf("invocation failed during %s: %v", e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// JobFailedError - 비동기 작업이 원격에서 실패 (failureMessage 포함)
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("async job %s failed: %s", e.JobID, e.Message)
}

// RetrievalError - 작업 완료 후 오브젝트 스토리지 조회 실패
type RetrievalError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
