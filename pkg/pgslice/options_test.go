package pgslice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name     string
		opts     *Options
		wantErr  error
		wantType DumpType
	}{
		{
			name:     "TestOptions_Validate_Defaults",
			opts:     &Options{},
			wantType: TypeCopy,
		},
		{
			name:     "TestOptions_Validate_Updates",
			opts:     &Options{Type: TypeUpdates},
			wantType: TypeUpdates,
		},
		{
			name:    "TestOptions_Validate_UnknownType",
			opts:    &Options{Type: "truncate"},
			wantErr: ErrUnknownDumpType,
		},
		{
			name:    "TestOptions_Validate_UnknownTransaction",
			opts:    &Options{Transaction: "commit"},
			wantErr: ErrUnknownTransactionMode,
		},
		{
			name:    "TestOptions_Validate_OmitIDsWithUpdates",
			opts:    &Options{Type: TypeUpdates, OmitIDs: true},
			wantErr: ErrOmitIDsWithUpdates,
		},
		{
			name:    "TestOptions_Validate_DeleteFirstWithUpdates",
			opts:    &Options{Type: TypeUpdates, DeleteFirst: true},
			wantErr: ErrDeleteFirstWithUpdates,
		},
		{
			name:     "TestOptions_Validate_FullTransaction",
			opts:     &Options{Transaction: TransactionFull, DeleteFirst: true},
			wantType: TypeCopy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantType, tt.opts.Type)
		})
	}
}
