package reservation

import "musicportal/internal/domain"

func invalidRange() error {
	return &domain.ValidationError{Fields: map[string]string{
		"end_time": "must be after start_time",
	}}
}

func missingTimes(start, end bool) error {
	fields := map[string]string{}
	if start {
		fields["start_time"] = "required"
	}
	if end {
		fields["end_time"] = "required"
	}
	return &domain.ValidationError{Fields: fields}
}
