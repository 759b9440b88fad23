package ingest

// Buffer is a fixed capacity batch of values handed from the reader to
// the writer.
type Buffer struct {
	Capacity int
	Size     int
	values   []float64
}

func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		Capacity: capacity,
		Size:     0,
		values:   make([]float64, capacity, capacity),
	}
}

func (buffer *Buffer) Append(value float64) bool {
	if buffer.IsFull() {
		return false
	}
	buffer.values[buffer.Size] = value
	buffer.Size += 1
	return true
}

func (buffer *Buffer) IsFull() bool {
	return buffer.Size == buffer.Capacity
}

func (buffer *Buffer) Clear() {
	buffer.Size = 0
}

// Values aliases the buffer contents until the next Clear.
func (buffer *Buffer) Values() []float64 {
	return buffer.values[:buffer.Size]
}
