package extractor

import "context"

// fakeFirstQuery is a query.Query stub whose First() always returns a
// fixed value.
type fakeFirstQuery struct{ value string }

func (f fakeFirstQuery) Bool(ctx context.Context, input []byte) (bool, error) { return f.value != "", nil }
func (f fakeFirstQuery) First(ctx context.Context, input []byte) (string, error) {
	return f.value, nil
}
func (f fakeFirstQuery) All(ctx context.Context, input []byte) ([]string, error) {
	return []string{f.value}, nil
}
func (f fakeFirstQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return []string{f.value}, nil
}

// fakeBoolQuery is a query.Query stub whose Bool() always returns a
// fixed value.
type fakeBoolQuery struct{ value bool }

func (f fakeBoolQuery) Bool(ctx context.Context, input []byte) (bool, error) { return f.value, nil }
func (f fakeBoolQuery) First(ctx context.Context, input []byte) (string, error) {
	return boolString(f.value), nil
}
func (f fakeBoolQuery) All(ctx context.Context, input []byte) ([]string, error) {
	return []string{boolString(f.value)}, nil
}
func (f fakeBoolQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return []string{boolString(f.value)}, nil
}

// fakeErrQuery is a query.Query stub whose every method fails.
type fakeErrQuery struct{ err error }

func (f fakeErrQuery) Bool(ctx context.Context, input []byte) (bool, error)  { return false, f.err }
func (f fakeErrQuery) First(ctx context.Context, input []byte) (string, error) { return "", f.err }
func (f fakeErrQuery) All(ctx context.Context, input []byte) ([]string, error) { return nil, f.err }
func (f fakeErrQuery) Subsets(ctx context.Context, input []byte) ([]string, error) {
	return nil, f.err
}
