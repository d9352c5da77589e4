package mission

import (
	"fmt"
	"strings"
)

// Product describes one CDAWeb dataset and how its variables map onto the
// canonical column names.
type Product struct {
	// ID is the CDAWeb dataset identifier, e.g. THD_L2_FGM.
	ID string
	// Variables are the CDAWeb variable names requested from the dataset.
	Variables []string
	// Columns maps CDAWeb column labels to canonical column names.
	Columns map[string]string
}

// Canonical returns the canonical name of a CDAWeb column label, or the label
// itself if the product does not rename it.
func (p Product) Canonical(label string) string {
	if name, ok := p.Columns[label]; ok {
		return name
	}

	return label
}

// THEMIS returns the CDAWeb products for probe.
func THEMIS(probe Probe, instrument Instrument) (Product, error) {
	if _, err := ParseProbe(string(probe)); err != nil {
		return Product{}, err
	}

	up := string(probe)
	lo := strings.ToLower(up)

	switch instrument {
	case InstrumentField:
		return Product{
			ID:        fmt.Sprintf("TH%s_L2_FGM", up),
			Variables: []string{fmt.Sprintf("th%s_fgs_gsmQ", lo)},
			Columns: map[string]string{
				"BX_FGS-" + up: ColumnX,
				"BY_FGS-" + up: ColumnY,
				"BZ_FGS-" + up: ColumnZ,
			},
		}, nil
	case InstrumentPosition:
		return Product{
			ID:        fmt.Sprintf("TH%s_OR_SSC", up),
			Variables: []string{"XYZ_GSM", "RADIUS"},
			Columns: map[string]string{
				"X":      ColumnX,
				"Y":      ColumnY,
				"Z":      ColumnZ,
				"RADIUS": ColumnRadius,
			},
		}, nil
	case InstrumentPlasma:
		return Product{
			ID: fmt.Sprintf("TH%s_L2_MOM", up),
			Variables: []string{
				fmt.Sprintf("th%s_peem_density", lo),
				fmt.Sprintf("th%s_peem_velocity_gsm", lo),
				fmt.Sprintf("th%s_peem_flux", lo),
			},
			Columns: map[string]string{
				"N_ELEC_MOM_ESA-" + up:      ColumnDensity,
				"VX_ELEC_GSM_MOM_ESA-" + up: ColumnVelocityX,
				"FX_ELEC_MOM_ESA-" + up:     ColumnFluxX,
				"FY_ELEC_MOM_ESA-" + up:     ColumnFluxY,
			},
		}, nil
	default:
		return Product{}, fmt.Errorf("%w: unknown instrument %q", ErrInvalidRequest, instrument)
	}
}
